package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ProveedorRequest struct {
	CUIT      string  `json:"cuit"      validate:"required"`
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=150"`
	Contacto  *string `json:"contacto"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion"`
}

type ProveedorFilter struct {
	Q                string `form:"q"`
	IncluirInactivos bool   `form:"incluir_inactivos"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProveedorResponse struct {
	ID        int64   `json:"id"`
	CUIT      string  `json:"cuit"`
	Nombre    string  `json:"nombre"`
	Contacto  *string `json:"contacto"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email"`
	Direccion *string `json:"direccion"`
	Activo    bool    `json:"activo"`
}
