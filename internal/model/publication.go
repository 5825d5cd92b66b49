package model

// Publication is a document offering discovered on a vendor portal page,
// identified by part number.
type Publication struct {
	PartNumber      string `json:"partNumber"`
	PublicationType string `json:"publicationType"`
	Language        string `json:"language"`
	Title           string `json:"title"`
	LineOffDate     string `json:"lineOffDate"`
	ModelType       string `json:"modelType"`
	NgtdModelID     string `json:"ngtdModelId"`
	Year            string `json:"year"`
}

// Actionable reports whether the publication carries the three fields the
// download-link endpoint requires.
func (p Publication) Actionable() bool {
	return p.PartNumber != "" && p.ModelType != "" && DateOnly(p.LineOffDate) != ""
}
