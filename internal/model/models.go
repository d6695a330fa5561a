package model

// All returns every persisted model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Rol{},
		&Usuario{},
		&Proveedor{},
		&TipoProducto{},
		&Categoria{},
		&Medida{},
		&Producto{},
		&Stock{},
		&TipoMovimiento{},
		&MovimientoStock{},
		&EstadoCompra{},
		&OrdenCompra{},
		&DetalleCompra{},
		&Venta{},
		&DetalleVenta{},
		&Auditoria{},
		&Reporte{},
	}
}
