// Command lifectl 是运维命令行：迁移数据库、手动生成总结。
package main

import (
	"fmt"
	"os"
	"studylife-go/internal/config"
	"studylife-go/pkg/database"
	"studylife-go/pkg/log"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	configFlag string
	rootCmd    = &cobra.Command{
		Use:   "lifectl",
		Short: "Operator CLI for the studylife backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFlag)
			if err != nil {
				return err
			}
			config.Conf = cfg
			log.Init(cfg.Log.Level, "console", "")
			return nil
		},
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "./configs/config.yaml", "Config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDB() (*gorm.DB, error) {
	db, err := database.Open(config.Conf.Database)
	if err != nil {
		return nil, err
	}
	return db, nil
}
