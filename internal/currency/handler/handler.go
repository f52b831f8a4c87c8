package handler

import (
	"context"
	"sort"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/currency"
	"github.com/fekuna/omnipos-storefront-service/pkg/grpcjson"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "omnipos.storefront.v1.CurrencyService"

type ConvertPriceRequest struct {
	AmountUSD decimal.Decimal `json:"amountUsd"`
	Currency  string          `json:"currency"`
}

type ConvertPriceResponse struct {
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
}

type ListCurrenciesResponse struct {
	Currencies []currency.Currency `json:"currencies"`
}

type CurrencyServiceServer interface {
	GetDisplayCurrency(context.Context, *emptypb.Empty) (*currency.Detection, error)
	ListCurrencies(context.Context, *emptypb.Empty) (*ListCurrenciesResponse, error)
	ConvertPrice(context.Context, *ConvertPriceRequest) (*ConvertPriceResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CurrencyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		grpcjson.Unary(ServiceName, "GetDisplayCurrency", CurrencyServiceServer.GetDisplayCurrency),
		grpcjson.Unary(ServiceName, "ListCurrencies", CurrencyServiceServer.ListCurrencies),
		grpcjson.Unary(ServiceName, "ConvertPrice", CurrencyServiceServer.ConvertPrice),
	},
	Metadata: "omnipos/storefront/v1/currency.proto",
}

type CurrencyHandler struct {
	detector *currency.Detector
}

func NewCurrencyHandler(detector *currency.Detector) *CurrencyHandler {
	return &CurrencyHandler{detector: detector}
}

func (h *CurrencyHandler) GetDisplayCurrency(ctx context.Context, _ *emptypb.Empty) (*currency.Detection, error) {
	d := h.detector.Detect(ctx, auth.GetClientIP(ctx))
	return &d, nil
}

func (h *CurrencyHandler) ListCurrencies(ctx context.Context, _ *emptypb.Empty) (*ListCurrenciesResponse, error) {
	out := make([]currency.Currency, 0, len(currency.Currencies))
	for _, c := range currency.Currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return &ListCurrenciesResponse{Currencies: out}, nil
}

// ConvertPrice falls back to USD for unsupported currency codes, like the storefront display.
func (h *CurrencyHandler) ConvertPrice(ctx context.Context, req *ConvertPriceRequest) (*ConvertPriceResponse, error) {
	c := currency.Lookup(req.Currency)
	amount := currency.Convert(req.AmountUSD, c.Code)
	return &ConvertPriceResponse{
		Currency:  c.Code,
		Amount:    amount,
		Formatted: currency.Format(amount, c.Code),
	}, nil
}
