package rates

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// rateFile mirrors Config in a form viper can decode from yaml, json or toml.
// Absent sections keep the values from Default().
type rateFile struct {
	Version   string `mapstructure:"version"`
	PAYEBands []struct {
		Floor decimal.Decimal `mapstructure:"floor"`
		Rate  decimal.Decimal `mapstructure:"rate"`
	} `mapstructure:"paye_bands"`
	NSSF      *Contribution    `mapstructure:"nssf"`
	SHIFRate  *decimal.Decimal `mapstructure:"shif_rate"`
	AHL       *Contribution    `mapstructure:"ahl"`
	NHIFBands []struct {
		Min    decimal.Decimal  `mapstructure:"min"`
		Max    *decimal.Decimal `mapstructure:"max"`
		Amount decimal.Decimal  `mapstructure:"amount"`
	} `mapstructure:"nhif_bands"`
	NHIFFallback *decimal.Decimal `mapstructure:"nhif_fallback"`
	NITAEmployer *decimal.Decimal `mapstructure:"nita_employer"`
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook decodes rate values straight into decimal.Decimal. Quoted values
// are parsed exactly as written; bare numbers use their shortest decimal form.
func decimalHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromString(strconv.FormatFloat(v, 'f', -1, 64))
	case float32:
		return decimal.NewFromString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case uint64:
		return decimal.NewFromUint64(v), nil
	default:
		return nil, fmt.Errorf("cannot decode %T as a decimal", data)
	}
}

// Load reads a rate file and validates the result. An empty path returns the
// validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read rate file %s: %w", path, err)
	}

	var f rateFile
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		decimalHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&f, hook); err != nil {
		return Config{}, fmt.Errorf("decode rate file %s: %w", path, err)
	}

	cfg = f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (f rateFile) apply(cfg Config) Config {
	if f.Version != "" {
		cfg.Version = f.Version
	}
	if len(f.PAYEBands) > 0 {
		cfg.PAYEBands = make([]PAYEBand, 0, len(f.PAYEBands))
		for _, b := range f.PAYEBands {
			cfg.PAYEBands = append(cfg.PAYEBands, PAYEBand{Floor: b.Floor, Rate: b.Rate})
		}
	}
	if f.NSSF != nil {
		cfg.NSSF = *f.NSSF
	}
	if f.SHIFRate != nil {
		cfg.SHIFRate = *f.SHIFRate
	}
	if f.AHL != nil {
		cfg.AHL = *f.AHL
	}
	if len(f.NHIFBands) > 0 {
		cfg.NHIFBands = make([]NHIFBand, 0, len(f.NHIFBands))
		for _, b := range f.NHIFBands {
			cfg.NHIFBands = append(cfg.NHIFBands, NHIFBand{Min: b.Min, Max: b.Max, Amount: b.Amount})
		}
	}
	if f.NHIFFallback != nil {
		cfg.NHIFFallback = *f.NHIFFallback
	}
	if f.NITAEmployer != nil {
		cfg.NITAEmployer = *f.NITAEmployer
	}
	return cfg
}
