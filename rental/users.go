package rental

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const userColumns = `userId, userImg, username, email, password, token, phoneNumber, city, country`

const insertUserSql = `
INSERT INTO Users (userId, userImg, username, email, password, token, phoneNumber, city, country)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

const updateProfileSql = `
UPDATE Users
SET userImg = $1, username = $2, email = $3, phoneNumber = $4, city = $5, country = $6
WHERE userId = $7;
`

const selectUsersSql = `SELECT ` + userColumns + ` FROM Users;`

const selectUserByEmailSql = `SELECT ` + userColumns + ` FROM Users WHERE email = $1;`

const countUsersSql = `SELECT COUNT(*) FROM Users;`

// AddUser inserts a fully populated user and returns its row id. A taken
// email, password or user id yields -1 and ErrConflict.
func (s *Store) AddUser(ctx context.Context, user *User) (int64, error) {
	if err := validateRecord("add user", user); err != nil {
		return failedRowID, err
	}

	res, err := s.db.ExecContext(ctx, insertUserSql,
		user.UserID, blob(user.Image), user.Username, user.Email, user.Password,
		user.Token, user.PhoneNumber, user.City, user.Country)
	if err != nil {
		return failedRowID, classify(err, "add user "+user.UserID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return failedRowID, fmt.Errorf("add user %s: %w", user.UserID, err)
	}
	s.log.Debug().Str("user_id", user.UserID).Int64("row_id", id).Msg("user added")
	return id, nil
}

// EditProfile updates the profile fields of a user and returns the number of
// rows changed; 0 means there is no such user.
func (s *Store) EditProfile(ctx context.Context, userID string, edit ProfileEdit) (int64, error) {
	if err := validateRecord("edit profile", &edit); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, updateProfileSql,
		blob(edit.Image), edit.Username, edit.Email, edit.PhoneNumber, edit.City, edit.Country, userID)
	if err != nil {
		return 0, classify(err, "edit profile "+userID)
	}
	return res.RowsAffected()
}

// GetAllUsers returns every user in storage order.
func (s *Store) GetAllUsers(ctx context.Context) ([]User, error) {
	users := []User{}
	if err := s.db.SelectContext(ctx, &users, selectUsersSql); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUserByEmail returns the user registered with email, or nil.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user, selectUserByEmailSql, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// CountUsers returns the number of registered users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, countUsersSql); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
