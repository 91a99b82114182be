package service

import (
	"context"

	"connectrpc.com/connect"
)

// Client calls a PayoutService over Connect with the JSON codec.
type Client struct {
	loadReport        *connect.Client[LoadReportRequest, LoadReportResponse]
	computePayout     *connect.Client[ComputePayoutRequest, ComputePayoutResponse]
	suggestDeductions *connect.Client[SuggestDeductionsRequest, SuggestDeductionsResponse]
	acceptSuggestion  *connect.Client[AcceptSuggestionRequest, AcceptSuggestionResponse]
}

func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &Client{
		loadReport:        connect.NewClient[LoadReportRequest, LoadReportResponse](httpClient, baseURL+LoadReportProcedure, opts...),
		computePayout:     connect.NewClient[ComputePayoutRequest, ComputePayoutResponse](httpClient, baseURL+ComputePayoutProcedure, opts...),
		suggestDeductions: connect.NewClient[SuggestDeductionsRequest, SuggestDeductionsResponse](httpClient, baseURL+SuggestDeductionsProcedure, opts...),
		acceptSuggestion:  connect.NewClient[AcceptSuggestionRequest, AcceptSuggestionResponse](httpClient, baseURL+AcceptSuggestionProcedure, opts...),
	}
}

func (c *Client) LoadReport(ctx context.Context, req *connect.Request[LoadReportRequest]) (*connect.Response[LoadReportResponse], error) {
	return c.loadReport.CallUnary(ctx, req)
}

func (c *Client) ComputePayout(ctx context.Context, req *connect.Request[ComputePayoutRequest]) (*connect.Response[ComputePayoutResponse], error) {
	return c.computePayout.CallUnary(ctx, req)
}

func (c *Client) SuggestDeductions(ctx context.Context, req *connect.Request[SuggestDeductionsRequest]) (*connect.Response[SuggestDeductionsResponse], error) {
	return c.suggestDeductions.CallUnary(ctx, req)
}

func (c *Client) AcceptSuggestion(ctx context.Context, req *connect.Request[AcceptSuggestionRequest]) (*connect.Response[AcceptSuggestionResponse], error) {
	return c.acceptSuggestion.CallUnary(ctx, req)
}
