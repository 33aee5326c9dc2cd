package app

import "fmt"

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandWorker は秘書レポート生成ワーカーモードで起動することを示す。
	CommandWorker Command = "worker"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空の場合はCommandServeを返す。サポート外のコマンドは
// Dockerコマンドラインの打ち間違いを黙って握り潰さないようエラーにする。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 {
		return CommandServe, nil
	}

	switch args[0] {
	case "serve":
		return CommandServe, nil
	case "worker":
		return CommandWorker, nil
	case "migrate":
		return CommandMigrate, nil
	case "healthcheck":
		return CommandHealthcheck, nil
	default:
		return "", fmt.Errorf("unknown command: %q", args[0])
	}
}
