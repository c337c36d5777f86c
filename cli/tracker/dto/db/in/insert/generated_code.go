package insert

type GeneratedCode struct {
	QRCode      string `json:"qr_code"`
	GeneratedBy string `json:"generated_by"`
}
