// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package schema names every table and column the repositories touch.

Queries are assembled from these identifiers so a column rename is a
one-line change here rather than a search through SQL strings.
*/
package schema

import "strings"

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table               string
	ID                  string
	Name                string
	Email               string
	Password            string
	Role                string
	IsActive            string
	ResetTokenHash      string
	ResetTokenExpiresAt string
	CreatedAt           string
	UpdatedAt           string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:               "users.account",
	ID:                  "id",
	Name:                "name",
	Email:               "email",
	Password:            "passwordhash",
	Role:                "role",
	IsActive:            "isactive",
	ResetTokenHash:      "resettokenhash",
	ResetTokenExpiresAt: "resettokenexpiresat",
	CreatedAt:           "createdat",
	UpdatedAt:           "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Email, t.Password, t.Role, t.IsActive,
		t.ResetTokenHash, t.ResetTokenExpiresAt, t.CreatedAt, t.UpdatedAt,
	}
}

// List joins column names for a SELECT projection.
func List(columns []string) string {
	return strings.Join(columns, ", ")
}
