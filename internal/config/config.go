package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SaleStart time.Time
	SaleEnd   time.Time

	CustodyWallet  string
	OwnerAddress   string
	AdminAddresses []string

	// MinContribution in raw native units; nil selects the engine default.
	MinContribution *big.Int
	OracleGasPrice  uint64

	Port          string
	DBSource      string // empty disables the archive
	OracleEnabled bool
	Env           string
}

func Load() (*Config, error) {
	saleStart, err := requiredUnix("SALE_START")
	if err != nil {
		return nil, err
	}
	saleEnd, err := requiredUnix("SALE_END")
	if err != nil {
		return nil, err
	}

	wallet := os.Getenv("CUSTODY_WALLET")
	if wallet == "" {
		return nil, fmt.Errorf("CUSTODY_WALLET environment variable is required")
	}
	owner := os.Getenv("OWNER_ADDRESS")
	if owner == "" {
		return nil, fmt.Errorf("OWNER_ADDRESS environment variable is required")
	}

	var admins []string
	if raw := os.Getenv("ADMIN_ADDRESSES"); raw != "" {
		for _, a := range strings.Split(raw, ",") {
			if a = strings.TrimSpace(a); a != "" {
				admins = append(admins, a)
			}
		}
	}

	var minContribution *big.Int
	if raw := os.Getenv("MIN_CONTRIBUTION"); raw != "" {
		v, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, fmt.Errorf("MIN_CONTRIBUTION must be a base-10 integer, got %q", raw)
		}
		minContribution = v
	}

	var gasPrice uint64
	if raw := os.Getenv("ORACLE_GAS_PRICE"); raw != "" {
		gasPrice, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ORACLE_GAS_PRICE: %w", err)
		}
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &Config{
		SaleStart:       saleStart,
		SaleEnd:         saleEnd,
		CustodyWallet:   wallet,
		OwnerAddress:    owner,
		AdminAddresses:  admins,
		MinContribution: minContribution,
		OracleGasPrice:  gasPrice,
		Port:            port,
		DBSource:        os.Getenv("DB_SOURCE"),
		OracleEnabled:   os.Getenv("ORACLE_ENABLED") == "true",
		Env:             env,
	}, nil
}

func requiredUnix(name string) (time.Time, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s environment variable is required", name)
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a unix timestamp: %w", name, err)
	}
	return time.Unix(secs, 0), nil
}
