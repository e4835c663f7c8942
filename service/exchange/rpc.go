// Copyright 2025 The fawa Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package exchange

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/fawa-io/lanshare/pkg/fwlog"
)

const ExchangeServiceName = "lanshare.exchange.v1.ExchangeService"

const (
	ListFilesProcedure     = "/" + ExchangeServiceName + "/ListFiles"
	GetServerInfoProcedure = "/" + ExchangeServiceName + "/GetServerInfo"
)

// ExchangeServiceHandler exposes the listing and server info over Connect,
// gRPC and gRPC-Web using the protobuf well-known types.
type ExchangeServiceHandler struct {
	svc  *Service
	info Info
}

func (h *ExchangeServiceHandler) ListFiles(
	_ context.Context,
	_ *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.ListValue], error) {
	names, err := h.svc.ListFiles()
	if err != nil {
		fwlog.Errorf("ListFiles failed: %v", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	values := make([]any, len(names))
	for i, n := range names {
		values[i] = n
	}
	list, err := structpb.NewList(values)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(list), nil
}

func (h *ExchangeServiceHandler) GetServerInfo(
	_ context.Context,
	_ *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	info, err := structpb.NewStruct(map[string]any{
		"url":    h.info.URL,
		"qrcode": h.info.QRCode,
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(info), nil
}

// NewExchangeServiceHandler returns the path to mount the service on and
// its handler.
func NewExchangeServiceHandler(svc *Service, info Info, opts ...connect.HandlerOption) (string, http.Handler) {
	h := &ExchangeServiceHandler{svc: svc, info: info}
	listFiles := connect.NewUnaryHandler(ListFilesProcedure, h.ListFiles, opts...)
	getServerInfo := connect.NewUnaryHandler(GetServerInfoProcedure, h.GetServerInfo, opts...)

	return "/" + ExchangeServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ListFilesProcedure:
			listFiles.ServeHTTP(w, r)
		case GetServerInfoProcedure:
			getServerInfo.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
