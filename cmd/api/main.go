package main

import (
	"context"
	"log"
	"net/http"

	"github.com/betexlabs/saft-engine/internal/api"
	"github.com/betexlabs/saft-engine/internal/config"
	"github.com/betexlabs/saft-engine/internal/engine"
	"github.com/betexlabs/saft-engine/internal/oracle"
	"github.com/betexlabs/saft-engine/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Optional write-behind archive
	var archive *store.Archive
	if cfg.DBSource != "" {
		archive, err = store.NewArchive(cfg.DBSource)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		if err := archive.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Unable to prepare archive schema: %v", err)
		}
		go archive.Run(context.Background())
	}

	notify := func(ev engine.Event) {
		if archive != nil {
			archive.Notify(ev)
		}
	}

	// The oracle client needs the engine and the engine needs the
	// requester, so the requester is bound through a forward reference.
	var oracleClient *oracle.Client
	var requester engine.QuoteRequester
	if cfg.OracleEnabled {
		requester = requesterFunc(func(req engine.QuoteRequest) {
			oracleClient.RequestQuote(req)
		})
	}

	eng, err := engine.New(engine.Params{
		StartTime:       cfg.SaleStart,
		EndTime:         cfg.SaleEnd,
		Wallet:          cfg.CustodyWallet,
		Owner:           cfg.OwnerAddress,
		Admins:          cfg.AdminAddresses,
		MinContribution: cfg.MinContribution,
		OracleGasPrice:  cfg.OracleGasPrice,
	}, requester, notify)
	if err != nil {
		log.Fatalf("Engine construction failed: %v", err)
	}

	if cfg.OracleEnabled {
		oracleClient = oracle.New(eng)
		oracleClient.Start(context.Background())
	}

	r := api.NewRouter(api.NewHandler(eng))

	log.Printf("Server starting on :%s (sale window %s - %s)",
		cfg.Port, cfg.SaleStart.Format("2006-01-02"), cfg.SaleEnd.Format("2006-01-02"))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}

type requesterFunc func(engine.QuoteRequest)

func (f requesterFunc) RequestQuote(req engine.QuoteRequest) { f(req) }
