package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harborstat/bunnytab"
	"github.com/harborstat/bunnytab/internal/codec"
	"github.com/harborstat/bunnytab/internal/logx"
	"github.com/harborstat/bunnytab/internal/version"
)

// Test seams — overridden in unit tests. Keep signatures in sync with packages.
var (
	loadCreds func(path ...string) (bunnytab.Credentials, error)                 = bunnytab.LoadCredentials
	newClient func(bunnytab.Credentials, ...bunnytab.Option) (*bunnytab.Client, error) = bunnytab.New
	exit      func(int)                                                          = os.Exit
)

const usage = `
Usage:
  bunnytab upload   <localFile> <remotePath>
  bunnytab download <remotePath> [localFile]
  bunnytab rm       <remotePath>
  bunnytab ls       [prefix]
  bunnytab convert  <inFile> <outFile>
  bunnytab version | --version | -v
  bunnytab help    | --help    | -h

Notes:
  - Credentials come from the environment or a local .env file:
      BUNNY_STORAGE_ZONE, BUNNY_PASS_READ and/or BUNNY_PASS_WRITE,
      optionally BUNNY_STORAGE_REGION.
  - convert runs locally through the format registry (no network).
`

// main wires CLI -> credentials -> client -> transfer.
// Exit codes: 0 success, 1 runtime error, 2 usage error.
func main() {
	logx.InitFromEnv()

	args := os.Args[1:]
	if len(args) < 1 {
		fmt.Print(usage)
		exit(2)
	}
	action := strings.ToLower(args[0])

	if action == "version" || action == "--version" || action == "-v" {
		fmt.Printf("bunnytab %s\n", version.Info())
		exit(0)
	}
	if action == "help" || action == "--help" || action == "-h" {
		fmt.Print(usage)
		exit(0)
	}

	// convert needs no credentials.
	if action == "convert" {
		if len(args) < 3 {
			fmt.Print(usage)
			exit(2)
		}
		if err := convert(args[1], args[2]); err != nil {
			log.Error().Err(err).Str("action", "convert").Msg("convert failed")
			exit(1)
		}
		exit(0)
	}

	creds, err := loadCreds()
	if err != nil {
		log.Error().Err(err).Msg("credentials error")
		exit(1)
	}
	client, err := newClient(creds)
	if err != nil {
		log.Error().Err(err).Str("zone", creds.Zone).Msg("client init error")
		exit(1)
	}

	ctx := withSignals(context.Background())

	switch action {
	case "upload":
		if len(args) < 3 {
			fmt.Print(usage)
			exit(2)
		}
		start := time.Now()
		if err := client.UploadFile(ctx, args[1], args[2]); err != nil {
			log.Error().Err(err).Str("action", "upload").Str("remote", args[2]).Msg("upload failed")
			exit(1)
		}
		log.Info().
			Str("action", "upload").
			Str("local", args[1]).
			Str("remote", args[2]).
			Dur("elapsed_ms", time.Since(start)).
			Msg("upload OK")

	case "download":
		if len(args) < 2 {
			fmt.Print(usage)
			exit(2)
		}
		remote := args[1]
		local := pickArgOrEnv(3, "BUNNYTAB_DOWNLOAD_TARGET", baseName(remote))
		start := time.Now()
		if err := client.DownloadFile(ctx, remote, local); err != nil {
			log.Error().Err(err).Str("action", "download").Str("remote", remote).Msg("download failed")
			exit(1)
		}
		log.Info().
			Str("action", "download").
			Str("remote", remote).
			Str("local", local).
			Dur("elapsed_ms", time.Since(start)).
			Msg("download OK")

	case "rm":
		if len(args) < 2 {
			fmt.Print(usage)
			exit(2)
		}
		if err := client.DeleteFile(ctx, args[1]); err != nil {
			log.Error().Err(err).Str("action", "rm").Str("remote", args[1]).Msg("delete failed")
			exit(1)
		}
		log.Info().Str("action", "rm").Str("remote", args[1]).Msg("delete OK")

	case "ls":
		prefix := ""
		if len(args) > 1 {
			prefix = args[1]
		}
		objs, err := client.ListFiles(ctx, prefix)
		if err != nil {
			log.Error().Err(err).Str("action", "ls").Str("prefix", prefix).Msg("list failed")
			exit(1)
		}
		for _, o := range objs {
			if o.IsDirectory {
				fmt.Printf("%12s  %s/\n", "-", o.Name)
				continue
			}
			fmt.Printf("%12d  %s\n", o.Size, o.Name)
		}

	default:
		fmt.Print(usage)
		exit(2)
	}
}

// convert decodes inPath and re-encodes it as outPath, with both
// formats derived from the file extensions.
func convert(inPath, outPath string) error {
	inCodec, _, err := codec.ForPath(inPath)
	if err != nil {
		return err
	}
	outCodec, _, err := codec.ForPath(outPath)
	if err != nil {
		return err
	}

	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	t, err := inCodec.Decode(in)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := outCodec.Encode(out, t); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// baseName is the last path element of a remote key.
func baseName(key string) string {
	key = strings.TrimSuffix(key, "/")
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

func pickArgOrEnv(idx int, env string, def string) string {
	if len(os.Args) > idx && os.Args[idx] != "" {
		return os.Args[idx]
	}
	if v, ok := os.LookupEnv(env); ok && v != "" {
		return v
	}
	return def
}

func withSignals(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		<-ch
		cancel()
	}()
	return ctx
}
