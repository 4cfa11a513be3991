// Copyright 2021 - 2022 Cairnstore
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"

	"github.com/BurntSushi/toml"

	"github.com/cairnstore/cairn/pkg/common/moerr"
	"github.com/cairnstore/cairn/pkg/logutil"
)

// OooConfig sizes the out-of-order planning stage. Queue sizes must be
// powers of two; zero is accepted and yields a queue that is always full,
// which for the open-column queue makes every column task run inline.
type OooConfig struct {
	PartitionQueueSize  uint32 `toml:"partition-queue-size"`
	OpenColumnQueueSize uint32 `toml:"open-column-queue-size"`
	SizeUpdateQueueSize uint32 `toml:"size-update-queue-size"`
	Workers             int    `toml:"workers"`
	MkDirMode           uint32 `toml:"mkdir-mode"`
}

type Config struct {
	Ooo OooConfig      `toml:"ooo"`
	Log logutil.Config `toml:"log"`
}

func Default() *Config {
	return &Config{
		Ooo: OooConfig{
			PartitionQueueSize:  128,
			OpenColumnQueueSize: 1024,
			SizeUpdateQueueSize: 1024,
			Workers:             2,
			MkDirMode:           0o755,
		},
		Log: logutil.Config{
			Level: "info",
		},
	}
}

// Load reads path into the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, moerr.NewBadConfig(context.Background(), "%s: %s", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	for _, q := range []struct {
		name string
		size uint32
	}{
		{"partition-queue-size", c.Ooo.PartitionQueueSize},
		{"open-column-queue-size", c.Ooo.OpenColumnQueueSize},
		{"size-update-queue-size", c.Ooo.SizeUpdateQueueSize},
	} {
		if q.size&(q.size-1) != 0 {
			return moerr.NewBadConfig(context.Background(),
				"%s must be a power of two, got %d", q.name, q.size)
		}
	}
	if c.Ooo.Workers < 1 {
		return moerr.NewBadConfig(context.Background(),
			"workers must be positive, got %d", c.Ooo.Workers)
	}
	if c.Ooo.MkDirMode == 0 || c.Ooo.MkDirMode > 0o777 {
		return moerr.NewBadConfig(context.Background(),
			"mkdir-mode out of range: %o", c.Ooo.MkDirMode)
	}
	return nil
}
