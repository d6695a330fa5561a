package dto

type AuditoriaFilter struct {
	Modulo    string `form:"modulo"`
	Evento    string `form:"evento"`
	UsuarioID int64  `form:"usuario_id"`
	Desde     string `form:"desde"`
	Hasta     string `form:"hasta"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=100"`
}

type AuditoriaResponse struct {
	ID          int64   `json:"id"`
	UsuarioID   *int64  `json:"usuario_id"`
	Usuario     *string `json:"usuario"`
	Evento      string  `json:"evento"`
	Modulo      string  `json:"modulo"`
	Descripcion string  `json:"descripcion"`
	FechaHora   string  `json:"fecha_hora"`
}
