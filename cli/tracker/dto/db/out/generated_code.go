package out

import "time"

type GeneratedCode struct {
	QRCode      string     `json:"qr_code" gorm:"column:qr_code"`
	IsUsed      bool       `json:"is_used"`
	UsedBy      *string    `json:"used_by"`
	GeneratedBy string     `json:"generated_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UsedAt      *time.Time `json:"used_at"`
}
