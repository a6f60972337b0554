package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

const selectPersonsQuery = `
	SELECT
		p.id,
		p.username,
		p.password_hash,
		p.first_name,
		p.last_name,
		p.email,
		p.created_at,
		p.version,
		pp.role
	FROM persons p
	LEFT JOIN person_permissions pp ON p.id = pp.person_id
`

// scanPersons 将 persons 与 person_permissions 的连接结果按 id 聚合，保持查询顺序
func scanPersons(rows *sql.Rows) ([]*domain.Person, error) {
	persons := make([]*domain.Person, 0)
	personsMap := make(map[int64]*domain.Person)

	for rows.Next() {
		var row struct {
			ID           int64
			Username     string
			PasswordHash string
			FirstName    string
			LastName     string
			Email        string
			CreatedAt    time.Time
			Version      int32
			Role         sql.NullString
		}

		dst := []any{
			&row.ID,
			&row.Username,
			&row.PasswordHash,
			&row.FirstName,
			&row.LastName,
			&row.Email,
			&row.CreatedAt,
			&row.Version,
			&row.Role,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		person, exists := personsMap[row.ID]
		if !exists {
			person = &domain.Person{
				ID:           row.ID,
				Username:     row.Username,
				PasswordHash: row.PasswordHash,
				FirstName:    row.FirstName,
				LastName:     row.LastName,
				Email:        row.Email,
				Permissions:  make([]domain.Role, 0),
				CreatedAt:    row.CreatedAt,
				Version:      row.Version,
			}
			personsMap[row.ID] = person
			persons = append(persons, person)
		}

		// 没有任何权限的人员 role 为空
		if !row.Role.Valid {
			continue
		}

		person.Permissions = append(person.Permissions, domain.Role(row.Role.String))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return persons, nil
}

func (r *Repository) queryPersons(query string, args ...any) ([]*domain.Person, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPersons(rows)
}

func (r *Repository) queryPerson(query string, args ...any) (*domain.Person, error) {
	persons, err := r.queryPersons(query, args...)
	if err != nil {
		return nil, err
	}
	if len(persons) == 0 {
		return nil, sql.ErrNoRows
	}
	return persons[0], nil
}

func (r *Repository) GetPersonByID(id int64) (*domain.Person, error) {
	return r.queryPerson(selectPersonsQuery+`WHERE p.id = $1 ORDER BY pp.role`, id)
}

func (r *Repository) GetPersonByUsername(username string) (*domain.Person, error) {
	return r.queryPerson(selectPersonsQuery+`WHERE p.username = $1 ORDER BY pp.role`, username)
}

func (r *Repository) GetAllPersons() ([]*domain.Person, error) {
	return r.queryPersons(selectPersonsQuery + `ORDER BY p.id, pp.role`)
}

func (r *Repository) GetPersonsByIDs(ids []int64) ([]*domain.Person, error) {
	if len(ids) == 0 {
		return make([]*domain.Person, 0), nil
	}
	return r.queryPersons(selectPersonsQuery+`WHERE p.id = ANY($1) ORDER BY p.id, pp.role`, ids)
}

// GetActivePersons 返回没有 INACTIVE 权限的人员
func (r *Repository) GetActivePersons() ([]*domain.Person, error) {
	query := selectPersonsQuery + `
		WHERE NOT EXISTS (
			SELECT 1 FROM person_permissions i WHERE i.person_id = p.id AND i.role = $1
		)
		ORDER BY p.first_name, p.last_name, p.id, pp.role
	`
	return r.queryPersons(query, domain.RoleInactive)
}

// GetActivePersonsByRole 返回拥有指定权限且未离职的人员
func (r *Repository) GetActivePersonsByRole(role domain.Role) ([]*domain.Person, error) {
	query := selectPersonsQuery + `
		WHERE EXISTS (
			SELECT 1 FROM person_permissions w WHERE w.person_id = p.id AND w.role = $1
		) AND NOT EXISTS (
			SELECT 1 FROM person_permissions i WHERE i.person_id = p.id AND i.role = $2
		)
		ORDER BY p.id, pp.role
	`
	return r.queryPersons(query, role, domain.RoleInactive)
}

func (r *Repository) CreatePerson(person *domain.Person) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO persons (username, password_hash, first_name, last_name, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	args := []any{person.Username, person.PasswordHash, person.FirstName, person.LastName, person.Email}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&person.ID, &person.CreatedAt, &person.Version); err != nil {
		return err
	}

	if err := insertPermissions(ctx, tx, person); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdatePerson(person *domain.Person) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE persons
		SET
			password_hash = $1,
			first_name = $2,
			last_name = $3,
			email = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING username, created_at, version
	`

	args := []any{person.PasswordHash, person.FirstName, person.LastName, person.Email, person.ID, person.Version}
	dst := []any{&person.Username, &person.CreatedAt, &person.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	// 权限整体替换
	if _, err := tx.ExecContext(ctx, `DELETE FROM person_permissions WHERE person_id = $1`, person.ID); err != nil {
		return err
	}
	if err := insertPermissions(ctx, tx, person); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func insertPermissions(ctx context.Context, tx *sql.Tx, person *domain.Person) error {
	query := `
		INSERT INTO person_permissions (person_id, role)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	for _, role := range person.Permissions {
		if _, err := tx.ExecContext(ctx, query, person.ID, role); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) DeletePerson(id int64) error {
	query := `
		DELETE FROM persons WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) CheckEmailIfExists(email string) (bool, error) {
	isExists := false

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM persons WHERE email = $1)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}
