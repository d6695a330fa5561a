package infra

import (
	"fmt"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/config"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the GORM connection, sizes the pool and, when enabled,
// runs AutoMigrate followed by the idempotent seed patches.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if !cfg.IsProduction() {
		logLevel = logger.Warn
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	maxOpen := cfg.DBMaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen / 2)
	sqlDB.SetConnMaxIdleTime(10 * time.Second)

	if cfg.DBAutoMigrate {
		if err := RunMigrations(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// RunMigrations creates or updates every table and applies the seed patches.
// Integration tests call it directly against a fresh container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches seeds the lookup tables and adds the objects GORM cannot
// express. Every statement is safe to re-run.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"seed roles", `
INSERT INTO roles (nombre, descripcion) VALUES
  ('ADMIN',      'Administrador del sistema'),
  ('COMPRAS',    'Gestión de compras y proveedores'),
  ('VENTAS',     'Gestión de ventas'),
  ('STOCK',      'Gestión de productos y stock'),
  ('OPERADOR',   'Operador de planta (pesaje)'),
  ('SUPERVISOR', 'Supervisión y reportes'),
  ('CONSULTA',   'Solo lectura')
ON CONFLICT (nombre) DO NOTHING`},
		{"seed tipos_producto", `
INSERT INTO tipos_producto (id, nombre) VALUES (1, 'Caja'), (2, 'Material')
ON CONFLICT (id) DO NOTHING`},
		{"seed tipos_movimiento", `
INSERT INTO tipos_movimiento (nombre) VALUES ('ENTRADA'), ('SALIDA')
ON CONFLICT (nombre) DO NOTHING`},
		{"seed estados_compra", `
INSERT INTO estados_compra (nombre) VALUES ('PENDIENTE'), ('RECIBIDA'), ('ANULADO')
ON CONFLICT (nombre) DO NOTHING`},
		{"remito sequence",
			`CREATE SEQUENCE IF NOT EXISTS remitos_numero_seq START 1`},
		{"drop global categoria name indexes",
			`DROP INDEX IF EXISTS idx_categorias_nombre, idx_categorias_nombre_lower`},
		{"case-insensitive categoria lookup per tipo",
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_categorias_tipo_nombre_lower ON categorias (tipo_id, lower(nombre))`},
		{"case-insensitive usuario mail",
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_usuarios_mail_lower ON usuarios (lower(mail))`},
		{"positive movement quantities", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_movimientos_cantidad_positiva') THEN
    ALTER TABLE movimientos_stock ADD CONSTRAINT chk_movimientos_cantidad_positiva CHECK (cantidad > 0);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
