package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jupiterclapton/cenackle/services/connection-service/internal/core/domain"
)

// La position n'est exploitable que si latitude ET longitude sont présentes.
const userColumns = `
	id, username, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(profile_pic, ''),
	COALESCE(mbti, ''),
	(latitude IS NOT NULL AND longitude IS NOT NULL),
	COALESCE(latitude, 0)::float8, COALESCE(longitude, 0)::float8`

// sqlUser est un DTO interne : il absorbe les NULL avant de remonter au domaine.
type sqlUser struct {
	ID          string
	Username    string
	FirstName   string
	LastName    string
	ProfilePic  string
	Mbti        string
	HasLocation bool
	Latitude    float64
	Longitude   float64
}

type UserRepo struct {
	db DB
}

func NewUserRepo(db DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, "get user by id", q, id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.getOne(ctx, "get user by username", q, username)
}

func (r *UserRepo) getOne(ctx context.Context, op, q, arg string) (*domain.User, error) {
	u, err := scanUser(conn(ctx, r.db).QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, handleError(op, err)
	}
	return u, nil
}

// FindByTypes : WHERE mbti = ANY($1), l'appelant exclu.
func (r *UserRepo) FindByTypes(ctx context.Context, types []domain.PersonalityType, excludeID string) ([]domain.User, error) {
	codes := make([]string, len(types))
	for i, t := range types {
		codes[i] = string(t)
	}

	q := `SELECT ` + userColumns + ` FROM users WHERE mbti = ANY($1) AND id <> $2`
	rows, err := conn(ctx, r.db).Query(ctx, q, codes, excludeID)
	if err != nil {
		return nil, handleError("find users by types", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, handleError("scan user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, handleError("find users by types", err)
	}
	return users, nil
}

func (r *UserRepo) SetPersonalityType(ctx context.Context, userID string, t domain.PersonalityType) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `UPDATE users SET mbti = $1 WHERE id = $2`, string(t), userID)
	if err != nil {
		return handleError("set personality type", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// --- HELPERS ---

// scanUser accepte pgx.Row comme pgx.Rows (même méthode Scan).
func scanUser(row pgx.Row) (*domain.User, error) {
	var u sqlUser
	if err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.ProfilePic,
		&u.Mbti, &u.HasLocation, &u.Latitude, &u.Longitude); err != nil {
		return nil, err
	}
	return toDomainUser(&u), nil
}

// toDomainUser convertit le DTO SQL en entité Domaine
func toDomainUser(u *sqlUser) *domain.User {
	user := &domain.User{
		ID:              u.ID,
		Username:        u.Username,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ProfilePic:      u.ProfilePic,
		PersonalityType: domain.PersonalityType(u.Mbti),
	}
	if u.HasLocation {
		user.Location = &domain.GeoPoint{Latitude: u.Latitude, Longitude: u.Longitude}
	}
	return user
}
