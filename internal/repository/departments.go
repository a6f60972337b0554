package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
)

// 三种成员关系放在一个 UNION 里一次查出，kind 区分关系类型
const selectDepartmentsQuery = `
	SELECT
		d.id,
		d.name,
		d.description,
		d.two_stage_approval,
		d.created_at,
		d.version,
		m.kind,
		m.person_id
	FROM departments d
	LEFT JOIN (
		SELECT department_id, person_id, 'member' AS kind FROM department_members
		UNION ALL
		SELECT department_id, person_id, 'head' AS kind FROM department_heads
		UNION ALL
		SELECT department_id, person_id, 'second_stage_authority' AS kind FROM department_second_stage_authorities
	) m ON d.id = m.department_id
`

func scanDepartments(rows *sql.Rows) ([]*domain.Department, error) {
	departments := make([]*domain.Department, 0)
	departmentsMap := make(map[int64]*domain.Department)

	for rows.Next() {
		var row struct {
			ID               int64
			Name             string
			Description      string
			TwoStageApproval bool
			CreatedAt        time.Time
			Version          int32

			Kind     sql.NullString
			PersonID sql.NullInt64
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.Description,
			&row.TwoStageApproval,
			&row.CreatedAt,
			&row.Version,
			&row.Kind,
			&row.PersonID,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		department, exists := departmentsMap[row.ID]
		if !exists {
			department = &domain.Department{
				ID:                      row.ID,
				Name:                    row.Name,
				Description:             row.Description,
				TwoStageApproval:        row.TwoStageApproval,
				MemberIDs:               make([]int64, 0),
				DepartmentHeadIDs:       make([]int64, 0),
				SecondStageAuthorityIDs: make([]int64, 0),
				CreatedAt:               row.CreatedAt,
				Version:                 row.Version,
			}
			departmentsMap[row.ID] = department
			departments = append(departments, department)
		}

		if !row.PersonID.Valid {
			// 空部门
			continue
		}

		switch row.Kind.String {
		case "member":
			department.MemberIDs = append(department.MemberIDs, row.PersonID.Int64)
		case "head":
			department.DepartmentHeadIDs = append(department.DepartmentHeadIDs, row.PersonID.Int64)
		case "second_stage_authority":
			department.SecondStageAuthorityIDs = append(department.SecondStageAuthorityIDs, row.PersonID.Int64)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return departments, nil
}

func (r *Repository) queryDepartments(query string, args ...any) ([]*domain.Department, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDepartments(rows)
}

func (r *Repository) GetAllDepartments() ([]*domain.Department, error) {
	return r.queryDepartments(selectDepartmentsQuery + `ORDER BY d.name, m.person_id`)
}

func (r *Repository) GetDepartmentByID(id int64) (*domain.Department, error) {
	departments, err := r.queryDepartments(selectDepartmentsQuery+`WHERE d.id = $1 ORDER BY m.person_id`, id)
	if err != nil {
		return nil, err
	}
	if len(departments) == 0 {
		return nil, sql.ErrNoRows
	}
	return departments[0], nil
}

// GetDepartmentsOfMember 返回人员所属的部门
func (r *Repository) GetDepartmentsOfMember(personID int64) ([]*domain.Department, error) {
	query := selectDepartmentsQuery + `
		WHERE d.id IN (SELECT department_id FROM department_members WHERE person_id = $1)
		ORDER BY d.name, m.person_id
	`
	return r.queryDepartments(query, personID)
}

// GetDepartmentsOfDepartmentHead 返回人员作为部门负责人管理的部门
func (r *Repository) GetDepartmentsOfDepartmentHead(personID int64) ([]*domain.Department, error) {
	query := selectDepartmentsQuery + `
		WHERE d.id IN (SELECT department_id FROM department_heads WHERE person_id = $1)
		ORDER BY d.name, m.person_id
	`
	return r.queryDepartments(query, personID)
}

// GetDepartmentsOfSecondStageAuthority 返回人员作为二级审批人负责的部门
func (r *Repository) GetDepartmentsOfSecondStageAuthority(personID int64) ([]*domain.Department, error) {
	query := selectDepartmentsQuery + `
		WHERE d.id IN (SELECT department_id FROM department_second_stage_authorities WHERE person_id = $1)
		ORDER BY d.name, m.person_id
	`
	return r.queryDepartments(query, personID)
}

func (r *Repository) CreateDepartment(department *domain.Department) error {
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
		INSERT INTO departments (name, description, two_stage_approval)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`
	args := []any{department.Name, department.Description, department.TwoStageApproval}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&department.ID, &department.CreatedAt, &department.Version); err != nil {
		return err
	}

	if err := insertDepartmentRelations(ctx, tx, department); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateDepartment(department *domain.Department) error {
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
		UPDATE departments
		SET
			name = $1,
			description = $2,
			two_stage_approval = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING created_at, version
	`
	args := []any{department.Name, department.Description, department.TwoStageApproval, department.ID, department.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&department.CreatedAt, &department.Version); err != nil {
		return err
	}

	for _, table := range []string{"department_members", "department_heads", "department_second_stage_authorities"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE department_id = $1`, department.ID); err != nil {
			return err
		}
	}

	if err := insertDepartmentRelations(ctx, tx, department); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func insertDepartmentRelations(ctx context.Context, tx *sql.Tx, department *domain.Department) error {
	relations := []struct {
		table string
		ids   []int64
	}{
		{"department_members", department.MemberIDs},
		{"department_heads", department.DepartmentHeadIDs},
		{"department_second_stage_authorities", department.SecondStageAuthorityIDs},
	}

	for _, relation := range relations {
		query := `INSERT INTO ` + relation.table + ` (department_id, person_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		for _, personID := range relation.ids {
			if _, err := tx.ExecContext(ctx, query, department.ID, personID); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *Repository) DeleteDepartment(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM departments WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
