package main

import (
	"fmt"
	"os"

	"github.com/Gabrial-8467/falcon/internal/config"
	"github.com/Gabrial-8467/falcon/internal/runner"
)

func run(path string) error {
	r, err := runner.New(config.DefaultExecutorConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if _, err := r.RunFile(path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
