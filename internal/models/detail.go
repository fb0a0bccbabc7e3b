package models

import "strconv"

// NotAvailable is shown for empty detail fields.
const NotAvailable = "N/A"

// DateLayout renders data_ocorrencia the way the dashboard shows it (pt-BR).
const DateLayout = "02/01/2006, 15:04:05"

var weekdays = [7]string{"Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado", "Domingo"}

// WeekdayName maps dia_semana (0 = Segunda) to its Portuguese name.
func WeekdayName(d int) (string, bool) {
	if d < 0 || d >= len(weekdays) {
		return "", false
	}
	return weekdays[d], true
}

// DetailField is one labelled cell of the occurrence detail grid.
type DetailField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DetailFields returns the occurrence detail grid in display order.
func DetailFields(n CrimeNode) []DetailField {
	date := NotAvailable
	if n.DataOcorrencia != nil && !n.DataOcorrencia.IsZero() {
		date = n.DataOcorrencia.Format(DateLayout)
	}

	return []DetailField{
		{"Data da Ocorrência", date},
		{"Bairro", orNA(n.Bairro)},
		{"Tipo de Crime", orNA(n.TipoCrime)},
		{"Arma Utilizada", orNA(n.ArmaUtilizada)},
		{"Nº de Vítimas", intOrNA(n.QuantidadeVitimas, true)},
		{"Nº de Suspeitos", intOrNA(n.QuantidadeSuspeitos, true)},
		{"Sexo do Suspeito", orNA(n.SexoSuspeito)},
		// Age 0 is treated as unknown, quantities of 0 are real values.
		{"Idade do Suspeito", intOrNA(n.IdadeSuspeito, false)},
		{"Órgão Responsável", orNA(n.OrgaoResponsavel)},
		{"Status da Investigação", orNA(n.StatusInvestigacao)},
		{"Modus Operandi", orNA(n.DescricaoModusOperandi)},
	}
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

func intOrNA(v *int, zeroIsValue bool) string {
	if v == nil || (*v == 0 && !zeroIsValue) {
		return NotAvailable
	}
	return strconv.Itoa(*v)
}
