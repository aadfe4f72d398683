package app

import "strconv"

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	// "migrate down [steps]" で直近のマイグレーションを取り消す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}

// ParseRollbackSteps は "migrate down [steps]" の取り消し件数を返す。
// down指定でなければ0、件数省略時は1を返す。
func ParseRollbackSteps(args []string) (int, error) {
	if len(args) < 2 || args[0] != "migrate" || args[1] != "down" {
		return 0, nil
	}
	if len(args) < 3 {
		return 1, nil
	}
	return strconv.Atoi(args[2])
}
