package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	KeyModel    = "model"
	KeyServer   = "server"
	KeyModelDir = "model_home"
	KeyPython   = "python"
	KeyPackages = "packages"
	KeyRembgBin = "rembg_bin"
	KeyYes      = "yes"
	KeyVerbose  = "verbose"

	EnvPrefix = "CUTOUT"
)

type Config struct {
	// Model rembg 模型名
	Model string
	// Server 非空时走 `rembg s` HTTP 服务，不再安装或检查本地模型
	Server string
	// ModelHome 空表示沿用 rembg 的规则 ($U2NET_HOME 或 ~/.u2net)
	ModelHome string
	Python    string
	Packages  []string
	RembgBin  string
	Yes       bool
	Verbose   bool
}

// SetDefaults 写入 v 的默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyModel, "isnet-general-use")
	v.SetDefault(KeyServer, "")
	v.SetDefault(KeyModelDir, "")
	v.SetDefault(KeyPython, "python3")
	v.SetDefault(KeyPackages, []string{"rembg[cli]", "onnxruntime"})
	v.SetDefault(KeyRembgBin, "rembg")
	v.SetDefault(KeyYes, false)
	v.SetDefault(KeyVerbose, false)
}

// Load 按 默认值 < 配置文件 < CUTOUT_* 环境变量 < flag 的顺序合并
// flag 由调用方通过 v.BindPFlag 绑定
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// rembg 自己也读 U2NET_HOME
	_ = v.BindEnv(KeyModelDir, EnvPrefix+"_MODEL_HOME", "U2NET_HOME")

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{
		Model:     v.GetString(KeyModel),
		Server:    strings.TrimRight(v.GetString(KeyServer), "/"),
		ModelHome: v.GetString(KeyModelDir),
		Python:    v.GetString(KeyPython),
		Packages:  v.GetStringSlice(KeyPackages),
		RembgBin:  v.GetString(KeyRembgBin),
		Yes:       v.GetBool(KeyYes),
		Verbose:   v.GetBool(KeyVerbose),
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("config %s: must not be empty", KeyModel)
	}
	return cfg, nil
}
