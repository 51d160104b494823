package mocks

//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/stockview/pkg/marketdata/provider Provider
