package shell

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/GriffinCanCode/docfs/internal/fetch"
)

func (s *Session) parseCurlArgs(args []string) (fetch.Request, error) {
	var (
		req      fetch.Request
		autoName bool
	)
	next := func(i int) (string, error) {
		if i+1 >= len(args) {
			return "", ErrUsage
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-L":
			req.Follow = true
		case "-O":
			autoName = true
		case "--text":
			req.Text = true
		case "-H", "-d", "-X", "-o":
			v, err := next(i)
			if err != nil {
				return req, err
			}
			i++
			switch arg {
			case "-H":
				if k, val, ok := strings.Cut(v, ":"); ok {
					req.Headers = append(req.Headers, fetch.Header{Key: strings.TrimSpace(k), Value: strings.TrimSpace(val)})
				}
			case "-d":
				data := v
				req.Data = &data
			case "-X":
				req.Method = v
			case "-o":
				p, err := s.resolve(v)
				if err != nil {
					return req, err
				}
				req.Output = p
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return req, ErrUsage
			}
			req.URL = arg
		}
	}

	if req.URL == "" {
		return req, ErrUsage
	}
	if autoName && req.Output == "" {
		p, err := s.resolve(fetch.OutputName(req.URL))
		if err != nil {
			return req, err
		}
		req.Output = p
	}
	return req, nil
}

func runCurl(ctx context.Context, s *Session, args []string, out io.Writer) error {
	if s.fetcher == nil {
		return ErrNoFetcher
	}
	req, err := s.parseCurlArgs(args)
	if err != nil {
		return err
	}

	res, err := s.fetcher.Fetch(ctx, s.fs, req)
	if res != nil {
		if res.SavedTo != "" {
			fmt.Fprintf(out, "Saved to %s (status %s)\n", res.SavedTo, res.StatusText)
		} else {
			fmt.Fprintf(out, "Status: %s\n", res.StatusText)
			io.WriteString(out, res.Body)
		}
	}
	return err
}

// curlInto runs curl and writes the body to target. Nothing is written when
// the request fails or the status is not 2xx.
func (s *Session) curlInto(ctx context.Context, args []string, target string, out io.Writer) error {
	if s.fetcher == nil {
		return ErrNoFetcher
	}
	req, err := s.parseCurlArgs(args)
	if err == ErrUsage {
		return usage(curlUsage)
	}
	if err != nil {
		return err
	}

	res, err := s.fetcher.Fetch(ctx, s.fs, req)
	s.record("curl", err)
	if err != nil {
		return err
	}
	if err := s.fs.WriteFile(ctx, target, res.Body); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved to %s (status %s)\n", target, res.StatusText)
	return nil
}
