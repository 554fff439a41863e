package app

import (
	"fmt"
	"strings"
)

// Command はkakeiboのサブコマンド。
type Command string

const (
	// CommandServe はAPIサーバーを起動する。
	CommandServe Command = "serve"
	// CommandMigrate は未適用のマイグレーションを適用する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のサーバーの /health を叩く。
	// distrolessイメージにはcurlがないため、DockerのHEALTHCHECKから使う。
	CommandHealthcheck Command = "healthcheck"
	// CommandCreateUser は端末からパスワードを読み取ってユーザーを登録する。
	CommandCreateUser Command = "create-user"
	// CommandHelp は使い方を表示する。
	CommandHelp Command = "help"
)

// commandSpec はサブコマンドの引数と説明。
type commandSpec struct {
	cmd   Command
	args  string
	usage string
}

// commands はサブコマンドの一覧。使い方の表示順を兼ねる。
var commands = []commandSpec{
	{CommandServe, "", "APIサーバーを起動する（既定）"},
	{CommandMigrate, "", "データベースのマイグレーションを適用する"},
	{CommandHealthcheck, "", "起動中のサーバーのヘルスチェックを行う"},
	{CommandCreateUser, "<name> <email>", "ユーザーを登録する（パスワードは端末から入力）"},
	{CommandHelp, "", "この使い方を表示する"},
}

// ParseCommand はコマンドライン引数の先頭からサブコマンドを決める。
// 引数がない場合と未知のサブコマンドの場合はCommandServeを返す。
// -h と --help はCommandHelpとして扱う。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch name := args[0]; name {
	case "-h", "--help":
		return CommandHelp
	default:
		for _, c := range commands {
			if string(c.cmd) == name {
				return c.cmd
			}
		}
		return CommandServe
	}
}

// Usage はサブコマンドの一覧を整形して返す。
func Usage() string {
	var b strings.Builder
	b.WriteString("usage: kakeibo <command> [args]\n\ncommands:\n")
	for _, c := range commands {
		name := string(c.cmd)
		if c.args != "" {
			name += " " + c.args
		}
		fmt.Fprintf(&b, "  %-28s %s\n", name, c.usage)
	}
	return b.String()
}
