package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/dto"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	// CreateIfAbsent inserts u unless a row with the same mail or auth_id exists.
	// created is true only when this call inserted the row.
	CreateIfAbsent(ctx context.Context, u *model.Usuario) (created bool, err error)
	FindByID(ctx context.Context, id int64) (*model.Usuario, error)
	// FindForAuth matches by provider subject or case-insensitive mail, preferring the subject.
	FindForAuth(ctx context.Context, authID uuid.UUID, mail string) (*model.Usuario, error)
	LinkAuthID(ctx context.Context, id int64, authID uuid.UUID) error
	List(ctx context.Context, filter dto.UsuarioFilter) ([]model.Usuario, int64, error)
	Update(ctx context.Context, u *model.Usuario) error

	FindRolByNombre(ctx context.Context, nombre string) (*model.Rol, error)
	ListRoles(ctx context.Context) ([]model.Rol, error)
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	u.Mail = strings.ToLower(strings.TrimSpace(u.Mail))
	return Classify(r.db.WithContext(ctx).Create(u).Error)
}

func (r *usuarioRepo) CreateIfAbsent(ctx context.Context, u *model.Usuario) (bool, error) {
	u.Mail = strings.ToLower(strings.TrimSpace(u.Mail))
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "mail"}}, DoNothing: true}).
		Create(u)
	if res.Error != nil {
		// ON CONFLICT arbitrates a single index; a concurrent insert with the
		// same auth_id still surfaces as a unique violation.
		if err := Classify(res.Error); !errors.Is(err, ErrDuplicate) {
			return false, err
		}
		return false, nil
	}
	return res.RowsAffected == 1, nil
}

func (r *usuarioRepo) FindByID(ctx context.Context, id int64) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).Preload("Rol").First(&u, id).Error
	return &u, err
}

func (r *usuarioRepo) FindForAuth(ctx context.Context, authID uuid.UUID, mail string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).Preload("Rol").
		Where("auth_id = ? OR lower(mail) = lower(?)", authID, mail).
		Order(clause.OrderBy{Expression: clause.Expr{SQL: "(auth_id = ?) DESC NULLS LAST", Vars: []interface{}{authID}, WithoutParentheses: true}}).
		First(&u).Error
	return &u, err
}

func (r *usuarioRepo) LinkAuthID(ctx context.Context, id int64, authID uuid.UUID) error {
	return Classify(r.db.WithContext(ctx).Model(&model.Usuario{}).
		Where("id = ? AND auth_id IS NULL", id).
		Update("auth_id", authID).Error)
}

func (r *usuarioRepo) List(ctx context.Context, filter dto.UsuarioFilter) ([]model.Usuario, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Usuario{})
	if filter.Q != "" {
		like := "%" + filter.Q + "%"
		q = q.Where("nombre ILIKE ? OR mail ILIKE ?", like, like)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Rol != "" {
		q = q.Where("rol_id = (SELECT id FROM roles WHERE nombre = ?)", filter.Rol)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset, limit := paginate(filter.Page, filter.Limit)
	var users []model.Usuario
	err := q.Preload("Rol").Order("nombre ASC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *usuarioRepo) Update(ctx context.Context, u *model.Usuario) error {
	return Classify(r.db.WithContext(ctx).Model(u).Select("dni", "nombre", "estado", "rol_id", "updated_at").Updates(u).Error)
}

func (r *usuarioRepo) FindRolByNombre(ctx context.Context, nombre string) (*model.Rol, error) {
	var rol model.Rol
	err := r.db.WithContext(ctx).Where("nombre = ?", strings.ToUpper(nombre)).First(&rol).Error
	return &rol, err
}

func (r *usuarioRepo) ListRoles(ctx context.Context) ([]model.Rol, error) {
	var roles []model.Rol
	err := r.db.WithContext(ctx).Order("id ASC").Find(&roles).Error
	return roles, err
}
