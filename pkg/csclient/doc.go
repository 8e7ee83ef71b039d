// Package csclient provides the entry point for constructing a Central Storage
// API client that implements the csapi.Client interface.
//
// It normalizes the configured endpoint, wires the retrying transport and the
// session, and optionally logs in. The returned csapi.Client exposes the
// resource clients: Laboratories(), Storages(), Sections(), Items(),
// Movements(), Users(), Auth() and Stats().
//
// Quick start
//
//	ctx := context.Background()
//
//	cli, err := csclient.New(ctx, &csapi.Config{
//	  APIEndpoint: "localhost:8080",
//	  Username:    "admin",
//	  Password:    "admin123",
//	})
//	if err != nil { log.Fatal(err) }
//
//	labs, err := cli.Laboratories().List(ctx, csapi.NewQueryParams().WithPageSize(50))
//
// Bulk work goes through csapi.NewBatchExecutor and csapi.NewPurger, which take
// the client as their only dependency.
package csclient
