package repository

import (
	"context"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"

	"gorm.io/gorm"
)

type AuditoriaFilter struct {
	Modulo    string
	Evento    string
	UsuarioID int64
	Desde     *time.Time
	Hasta     *time.Time // exclusive
	Page      int
	Limit     int
}

type AuditoriaRepository interface {
	Create(ctx context.Context, a *model.Auditoria) error
	List(ctx context.Context, filter AuditoriaFilter) ([]model.Auditoria, int64, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) Create(ctx context.Context, a *model.Auditoria) error {
	return r.db.WithContext(ctx).Omit("Usuario").Create(a).Error
}

func (r *auditoriaRepo) List(ctx context.Context, filter AuditoriaFilter) ([]model.Auditoria, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Auditoria{})
	if filter.Modulo != "" {
		q = q.Where("modulo = ?", filter.Modulo)
	}
	if filter.Evento != "" {
		q = q.Where("evento = ?", filter.Evento)
	}
	if filter.UsuarioID > 0 {
		q = q.Where("usuario_id = ?", filter.UsuarioID)
	}
	if filter.Desde != nil {
		q = q.Where("fecha_hora >= ?", *filter.Desde)
	}
	if filter.Hasta != nil {
		q = q.Where("fecha_hora < ?", *filter.Hasta)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(filter.Page, filter.Limit)
	var rows []model.Auditoria
	err := q.Preload("Usuario").Order("fecha_hora DESC, id DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}
