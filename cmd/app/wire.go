//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/aqi-search/internal/bootstrap"
	"github.com/yanqian/aqi-search/internal/domain/aqi"
	"github.com/yanqian/aqi-search/internal/infra/aqicn"
	"github.com/yanqian/aqi-search/internal/infra/config"
	httpiface "github.com/yanqian/aqi-search/internal/interface/http"
	"github.com/yanqian/aqi-search/pkg/logger"
	"github.com/yanqian/aqi-search/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideServiceConfig,
		provideAQICNClient,
		provideViewOptions,
		provideReadingCache,
		provideHistoryRepository,
		provideArchive,
		metrics.NewLookupCounter,
		aqi.NewService,
		wire.Bind(new(aqi.UpstreamClient), new(*aqicn.Client)),
		httpiface.NewHandler,
		httpiface.NewPageHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
