package dto

// Límites de paginación de los listados.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// PageRequest paginación pedida por query string (?limit=&offset=).
type PageRequest struct {
	Limit  int
	Offset int
}

// Normalize aplica el límite por defecto cuando falta o excede el máximo.
func (p *PageRequest) Normalize() {
	if p.Limit <= 0 || p.Limit > MaxPageLimit {
		p.Limit = DefaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
