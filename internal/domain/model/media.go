package model

// Media is an image or video payload held in memory for the duration of a run.
type Media struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

func (m Media) Empty() bool { return len(m.Data) == 0 }

// Size in bytes.
func (m Media) Size() int { return len(m.Data) }
