package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/worklog-dictionaries/internal/domain"
	"github.com/spec-kit/worklog-dictionaries/pkg/util"
)

const uniqueViolation = "23505"

// NewUserRepository constructs the Postgres account repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUsers{pool: pool}
}

type pgUsers struct {
	pool *pgxpool.Pool
}

func (r *pgUsers) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO users (id, email, full_name, role, password_hash)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Email, user.FullName, user.Role, user.PasswordHash)
	if isUnique(err) {
		return util.NewConflict("email already registered", nil)
	}
	return err
}

func (r *pgUsers) GetByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
        SELECT id, email, full_name, role, password_hash FROM users WHERE email=$1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *pgUsers) GetByID(ctx context.Context, id string) (*User, error) {
	const query = `
        SELECT id, email, full_name, role, password_hash FROM users WHERE id=$1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Email, &user.FullName, &user.Role, &user.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("user", nil)
		}
		return nil, err
	}
	return &user, nil
}

// NewVendorRepository constructs a Postgres vendor repository over the given
// table. The table name comes from a compile-time constant, never from input.
func NewVendorRepository(pool *pgxpool.Pool, table string) VendorRepository {
	return &pgVendors{pool: pool, table: table}
}

type pgVendors struct {
	pool  *pgxpool.Pool
	table string
}

func (r *pgVendors) List(ctx context.Context) ([]Vendor, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, tax_id, name FROM `+r.table+` ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Vendor
	for rows.Next() {
		var v Vendor
		if err := rows.Scan(&v.ID, &v.TaxID, &v.Name); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func (r *pgVendors) Create(ctx context.Context, taxID, name string) (*Vendor, error) {
	vendor := Vendor{ID: uuid.NewString(), TaxID: taxID, Name: name}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO `+r.table+` (id, tax_id, name) VALUES ($1,$2,$3)`,
		vendor.ID, vendor.TaxID, vendor.Name,
	)
	if isUnique(err) {
		return nil, util.NewConflict("vendor with this tax id already exists", nil)
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *pgVendors) Update(ctx context.Context, id, taxID, name string) (*Vendor, error) {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE `+r.table+` SET tax_id=$1, name=$2 WHERE id=$3`,
		taxID, name, id,
	)
	if isUnique(err) {
		return nil, util.NewConflict("vendor with this tax id already exists", nil)
	}
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, util.NewNotFound("vendor", nil)
	}
	return &Vendor{ID: id, TaxID: taxID, Name: name}, nil
}

func (r *pgVendors) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM `+r.table+` WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return util.NewNotFound("vendor", nil)
	}
	return nil
}

// NewTeamRepository constructs the Postgres team repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &pgTeams{pool: pool}
}

type pgTeams struct {
	pool *pgxpool.Pool
}

func (r *pgTeams) ListWithMembers(ctx context.Context) ([]domain.Team, error) {
	const query = `SELECT id, name FROM teams ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	index := map[string]int{}
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.Name); err != nil {
			return nil, err
		}
		team.Members = []domain.TeamMember{}
		index[team.ID] = len(teams)
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const memberQuery = `
        SELECT id, name, role, team_id FROM team_members
        WHERE team_id IS NOT NULL ORDER BY name ASC`
	memberRows, err := r.pool.Query(ctx, memberQuery)
	if err != nil {
		return nil, err
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var member domain.TeamMember
		if err := memberRows.Scan(&member.ID, &member.Name, &member.Role, &member.TeamID); err != nil {
			return nil, err
		}
		if i, ok := index[*member.TeamID]; ok {
			teams[i].Members = append(teams[i].Members, member)
		}
	}
	return teams, memberRows.Err()
}

func (r *pgTeams) Create(ctx context.Context, name string) (*domain.Team, error) {
	team := domain.Team{ID: uuid.NewString(), Name: name, Members: []domain.TeamMember{}}
	_, err := r.pool.Exec(ctx, `INSERT INTO teams (id, name) VALUES ($1,$2)`, team.ID, team.Name)
	if isUnique(err) {
		return nil, util.NewConflict("team name already exists", nil)
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *pgTeams) Update(ctx context.Context, id, name string) (*domain.Team, error) {
	cmd, err := r.pool.Exec(ctx, `UPDATE teams SET name=$1 WHERE id=$2`, name, id)
	if isUnique(err) {
		return nil, util.NewConflict("team name already exists", nil)
	}
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, util.NewNotFound("team", nil)
	}

	team := domain.Team{ID: id, Name: name, Members: []domain.TeamMember{}}
	const memberQuery = `
        SELECT id, name, role, team_id FROM team_members WHERE team_id=$1 ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, memberQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var member domain.TeamMember
		if err := rows.Scan(&member.ID, &member.Name, &member.Role, &member.TeamID); err != nil {
			return nil, err
		}
		team.Members = append(team.Members, member)
	}
	return &team, rows.Err()
}

// NewMemberRepository constructs the Postgres member repository.
func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &pgMembers{pool: pool}
}

type pgMembers struct {
	pool *pgxpool.Pool
}

func (r *pgMembers) Create(ctx context.Context, name string, role domain.MemberRole, teamID *string) (*domain.TeamMember, error) {
	member := domain.TeamMember{ID: uuid.NewString(), Name: name, Role: role, TeamID: teamID}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO team_members (id, name, role, team_id) VALUES ($1,$2,$3,$4)`,
		member.ID, member.Name, member.Role, member.TeamID,
	)
	if err != nil {
		return nil, mapMemberError(err)
	}
	return &member, nil
}

func (r *pgMembers) Update(ctx context.Context, id, name string, role domain.MemberRole, teamID *string) (*domain.TeamMember, error) {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE team_members SET name=$1, role=$2, team_id=$3 WHERE id=$4`,
		name, role, teamID, id,
	)
	if err != nil {
		return nil, mapMemberError(err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, util.NewNotFound("member", nil)
	}
	return &domain.TeamMember{ID: id, Name: name, Role: role, TeamID: teamID}, nil
}

func (r *pgMembers) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM team_members WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return util.NewNotFound("member", nil)
	}
	return nil
}

func mapMemberError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return util.NewConflict("member name already exists", nil)
		case "23503": // team_id references a missing team
			return util.NewNotFound("team", nil)
		}
	}
	return err
}

func isUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
