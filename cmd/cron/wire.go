//go:build wireinject
// +build wireinject

package main

import (
	"os"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/biz"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/conf"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/data"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// CronApp holds the usecases the scheduled jobs run against.
type CronApp struct {
	subscriptionUsecase *biz.SubscriptionUsecase
}

func wireApp(*conf.Bootstrap) (*CronApp, func(), error) {
	panic(wire.Build(
		newLogger,
		data.ProviderSet,
		biz.ProviderSet,
		wire.Struct(new(CronApp), "*"),
	))
}

func newLogger() log.Logger {
	return log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.name", "medplanner.subscription.cron",
	)
}
