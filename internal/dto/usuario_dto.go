package dto

type CrearUsuarioRequest struct {
	Nombre string  `json:"nombre" validate:"required,min=2,max=100"`
	Mail   string  `json:"mail"   validate:"required,email"`
	DNI    *string `json:"dni"    validate:"omitempty,numeric,min=7,max=10"`
	Rol    string  `json:"rol"    validate:"required,oneof=ADMIN COMPRAS VENTAS STOCK OPERADOR SUPERVISOR CONSULTA"`
}

type ActualizarUsuarioRequest struct {
	Nombre *string `json:"nombre" validate:"omitempty,min=2,max=100"`
	DNI    *string `json:"dni"    validate:"omitempty,numeric,min=7,max=10"`
	Rol    *string `json:"rol"    validate:"omitempty,oneof=ADMIN COMPRAS VENTAS STOCK OPERADOR SUPERVISOR CONSULTA"`
	Estado *string `json:"estado" validate:"omitempty,oneof=ACTIVO INACTIVO"`
}

// ActualizarPerfilRequest is what a user may change about themselves.
type ActualizarPerfilRequest struct {
	Nombre *string `json:"nombre" validate:"omitempty,min=2,max=100"`
	DNI    *string `json:"dni"    validate:"omitempty,numeric,min=7,max=10"`
}

type UsuarioFilter struct {
	Q      string `form:"q"`
	Rol    string `form:"rol"`
	Estado string `form:"estado"`
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=50"`
}

type UsuarioResponse struct {
	ID     int64   `json:"id"`
	DNI    *string `json:"dni"`
	Nombre string  `json:"nombre"`
	Mail   string  `json:"mail"`
	Estado string  `json:"estado"`
	Rol    string  `json:"rol"`
}

type RolResponse struct {
	ID          int64   `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion"`
}
