package domain

// WeightEntry is one body-weight measurement. Date is YYYY-MM-DD.
type WeightEntry struct {
	ID       string  `bson:"id" json:"id"`
	Date     string  `bson:"dateIso" json:"dateIso"`
	WeightKg float64 `bson:"weightKg" json:"weightKg"`
	Note     string  `bson:"note,omitempty" json:"note,omitempty"`
}
