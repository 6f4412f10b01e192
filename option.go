/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package groupreduce

import (
	"io"

	"github.com/rulego/groupreduce/lineage"
	"github.com/rulego/groupreduce/logger"
)

// Option configures a Stage
type Option func(*Stage)

// WithLogger sets the logger of the stage and of everything it drives
func WithLogger(log logger.Logger) Option {
	return func(s *Stage) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithLogLevel sets the level of the stage logger. Apply it after WithLogger
// to change the level of a custom logger.
func WithLogLevel(level logger.Level) Option {
	return func(s *Stage) {
		s.logger.SetLevel(level)
	}
}

// WithLogOutput logs to output at the given level
func WithLogOutput(output io.Writer, level logger.Level) Option {
	return func(s *Stage) {
		s.logger = logger.NewLogger(level, output)
	}
}

// WithDiscardLog disables logging
func WithDiscardLog() Option {
	return func(s *Stage) {
		s.logger = logger.NewDiscardLogger()
	}
}

// WithLineage records field lineage once the output schema is known
func WithLineage(recorder lineage.Recorder) Option {
	return func(s *Stage) {
		s.lineage = recorder
	}
}
