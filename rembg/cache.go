package rembg

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultModelDir = ".u2net"

// ModelHome rembg 的模型缓存目录，override 为空时取 ~/.u2net
func ModelHome(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("user home dir: %w", err)
	}
	return filepath.Join(home, defaultModelDir), nil
}

func ModelPath(home, model string) string {
	return filepath.Join(home, model+".onnx")
}

// ModelCached 只看缓存文件是否存在，缓存布局变化时会误报“首次运行”
func ModelCached(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
