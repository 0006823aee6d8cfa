package config

import (
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type ProjectConfig struct {
	Name        string `mapstructure:"name"`
	EPSG        int    `mapstructure:"epsg"`
	ControlFile string `mapstructure:"control_file"`
	OutputDir   string `mapstructure:"output_dir"`
}

type MeshBuilderConfig struct {
	Image  string `mapstructure:"image"`
	Volume string `mapstructure:"volume"`
}

type SimulatorConfig struct {
	Executable string `mapstructure:"executable"`
	MPICommand string `mapstructure:"mpi_command"`
	LogDir     string `mapstructure:"log_dir"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Environment string `mapstructure:"environment"`
}

type Config struct {
	Project     ProjectConfig     `mapstructure:"project"`
	MeshBuilder MeshBuilderConfig `mapstructure:"mesh_builder"`
	Simulator   SimulatorConfig   `mapstructure:"simulator"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

func Load() (*Config, error) {
	viper.SetDefault("project.name", "Basin")
	viper.SetDefault("project.output_dir", "preprocessing")
	viper.SetDefault("mesh_builder.image", "tribs/meshbuilder:latest")
	viper.SetDefault("simulator.executable", "tRIBS")
	viper.SetDefault("simulator.log_dir", ".")
	viper.SetDefault("logging.level", LogLevelInfo)
	viper.SetDefault("logging.environment", EnvDev)

	viper.SetConfigName("gotribs")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("gotribs")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Info("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Project,
			validation.Required,
			validation.By(func(value interface{}) error {
				pc, ok := value.(ProjectConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ProjectConfig")
				}
				return validation.ValidateStruct(&pc,
					validation.Field(&pc.Name,
						validation.Required,
					),
					validation.Field(&pc.EPSG,
						validation.Min(0),
					),
					validation.Field(&pc.OutputDir,
						validation.Required,
					),
				)
			}),
		),
		validation.Field(&c.MeshBuilder,
			validation.Required,
			validation.By(func(value interface{}) error {
				mc, ok := value.(MeshBuilderConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a MeshBuilderConfig")
				}
				return validation.ValidateStruct(&mc,
					validation.Field(&mc.Image,
						validation.Required,
						validation.By(validateImageRef),
					),
				)
			}),
		),
		validation.Field(&c.Simulator,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(SimulatorConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a SimulatorConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Executable,
						validation.Required,
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
					validation.Field(&lc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
				)
			}),
		),
	)
}

func validateImageRef(value interface{}) error {
	ref, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if strings.ContainsAny(ref, " \t") {
		return validation.NewError("validation_invalid_image", "image reference cannot contain whitespace")
	}

	name := ref
	if i := strings.LastIndex(ref, ":"); i > 0 && !strings.Contains(ref[i+1:], "/") {
		name = ref[:i]
		if ref[i+1:] == "" {
			return validation.NewError("validation_invalid_image", "image tag cannot be empty")
		}
	}

	if name == "" {
		return validation.NewError("validation_invalid_image", "image name cannot be empty")
	}

	return nil
}
