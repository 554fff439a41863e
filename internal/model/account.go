// Package model はドメインモデルを定義する。
package model

import "time"

// AccountType は口座種別を表す。
type AccountType string

const (
	// AccountTypeSavings は普通預金口座。
	AccountTypeSavings AccountType = "savings"
	// AccountTypeChecking は当座預金口座。
	AccountTypeChecking AccountType = "checking"
	// AccountTypePayroll は給与受取口座。
	AccountTypePayroll AccountType = "payroll"
)

// Valid は定義済みの口座種別かどうかを返す。
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeChecking, AccountTypePayroll:
		return true
	}
	return false
}

// Account はユーザーが所有する口座を表す。
type Account struct {
	ID        string
	UserID    string
	Name      string
	Type      AccountType
	CreatedAt time.Time
	UpdatedAt time.Time
}
