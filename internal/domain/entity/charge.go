package entity

// Charge is one billable service event read from the monthly co-participation spreadsheet
type Charge struct {
	Line            int    `json:"line"` // 1-based line in the source sheet
	FunctionalID    string `json:"functional_id"`
	RealizationDate string `json:"realization_date"`
	Beneficiary     string `json:"beneficiary"`
	Holder          string `json:"holder"`
	ReferenceMonth  string `json:"reference_month"`
	Service         string `json:"service"`
	Quantity        string `json:"quantity"`
	Provider        string `json:"provider"`
	RawAmount       string `json:"raw_amount"`
}
