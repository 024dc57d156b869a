package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/cache"
)

// snapshot prints the JSON stored at key, indented. Without a key it lists the cached keys.
func (cli *commandLine) snapshot(key string) error {
	store, err := cli.openStore()
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	if key == "" {
		keys, err := store.Keys()
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(cli.out, k)
		}
		return nil
	}

	data, err := store.Load(key)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return fmt.Errorf("%q: no such snapshot", key)
		}
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return errors.Wrapf(err, "decoding %q", key)
	}
	fmt.Fprintln(cli.out, buf.String())
	return nil
}
