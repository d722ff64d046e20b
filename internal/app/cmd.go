package app

import (
	"fmt"
	"strconv"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	CommandServe   Command = "serve"
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はdistrolessイメージのDocker HEALTHCHECKから呼ばれる。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand は先頭引数からサブコマンドを判定する。
// 空またはサポート外の場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	switch Command(args[0]) {
	case CommandMigrate:
		return CommandMigrate
	case CommandHealthcheck:
		return CommandHealthcheck
	default:
		return CommandServe
	}
}

// MigrateAction はmigrateサブコマンドの動作。
type MigrateAction string

const (
	MigrateUp      MigrateAction = "up"
	MigrateDown    MigrateAction = "down"
	MigrateVersion MigrateAction = "version"
)

// MigrateOptions はmigrateサブコマンドの引数を解析した結果。
type MigrateOptions struct {
	Action MigrateAction
	// Steps はdown時のロールバック件数。0は全件。
	Steps int
}

// ParseMigrateOptions は "migrate" 以降の引数を解析する。
//
//	migrate            → up
//	migrate up
//	migrate down [N]   → N件（省略時1件）ロールバック、"all"で全件
//	migrate version
func ParseMigrateOptions(args []string) (MigrateOptions, error) {
	if len(args) == 0 {
		return MigrateOptions{Action: MigrateUp}, nil
	}

	switch MigrateAction(args[0]) {
	case MigrateUp:
		return MigrateOptions{Action: MigrateUp}, nil
	case MigrateVersion:
		return MigrateOptions{Action: MigrateVersion}, nil
	case MigrateDown:
		opts := MigrateOptions{Action: MigrateDown, Steps: 1}
		if len(args) < 2 {
			return opts, nil
		}
		if args[1] == "all" {
			opts.Steps = 0
			return opts, nil
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return MigrateOptions{}, fmt.Errorf("invalid rollback steps %q: want a positive integer or \"all\"", args[1])
		}
		opts.Steps = n
		return opts, nil
	default:
		return MigrateOptions{}, fmt.Errorf("unknown migrate action %q", args[0])
	}
}
