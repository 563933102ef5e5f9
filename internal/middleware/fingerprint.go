package middleware

import (
	"odata_batch/internal/version"
)

type Fingerprint struct {
	server string
}

func NewFingerprint() *Fingerprint {
	return &Fingerprint{server: "odata_batch/" + version.GetShortVersion()}
}

func (h *Fingerprint) HandleResponse(header Header, body []byte) error {
	header.Set("Server", h.server)
	return nil
}
