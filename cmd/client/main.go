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

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/pflag"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/fawa-io/lanshare/pkg/fwlog"
	"github.com/fawa-io/lanshare/service/exchange"
)

func main() {
	server := pflag.String("server", "http://localhost:7860", "Base URL of the lanshare server")
	timeout := pflag.Duration("timeout", 5*time.Second, "Request timeout")
	pflag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	base := strings.TrimSuffix(*server, "/")
	infoClient := connect.NewClient[emptypb.Empty, structpb.Struct](
		http.DefaultClient,
		base+exchange.GetServerInfoProcedure,
	)
	info, err := infoClient.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		fwlog.Fatalf("GetServerInfo failed: %v", err)
	}
	fmt.Fprintf(os.Stdout, "Server URL: %s\n", info.Msg.GetFields()["url"].GetStringValue())

	listClient := connect.NewClient[emptypb.Empty, structpb.ListValue](
		http.DefaultClient,
		base+exchange.ListFilesProcedure,
	)
	files, err := listClient.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		fwlog.Fatalf("ListFiles failed: %v", err)
	}
	for _, v := range files.Msg.GetValues() {
		fmt.Fprintln(os.Stdout, v.GetStringValue())
	}
}
