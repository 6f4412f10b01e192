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

package functions

import (
	"github.com/rulego/groupreduce/condition"
	"github.com/rulego/groupreduce/failure"
	"github.com/rulego/groupreduce/schema"
	"github.com/rulego/groupreduce/utils/fieldpath"
)

// MissingConditionFields returns the field paths referenced by the condition
// of d that do not resolve in s. Every element of a nested path is checked.
func MissingConditionFields(d Descriptor, s *schema.Schema) ([]string, error) {
	if !d.Kind.IsConditional() || d.Condition == "" {
		return nil, nil
	}
	paths, err := condition.Variables(d.Condition)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, p := range paths {
		if !fieldpath.ExistsInSchema(s, p) {
			missing = append(missing, fieldpath.Join(p))
		}
	}
	return missing, nil
}

// ValidateConditions adds a failure for every condition field of the
// conditional descriptors that is absent from s. A nil schema is not checked.
func ValidateConditions(s *schema.Schema, descriptors []Descriptor, collector *failure.Collector) {
	if s == nil {
		return
	}
	for _, d := range descriptors {
		missing, err := MissingConditionFields(d, s)
		if err != nil {
			collector.AddFailure(err.Error(), "Please fix the condition expression.").
				WithConfigElement("aggregates", d.String())
			continue
		}
		for _, path := range missing {
			collector.AddFailure("Field "+path+" not found in output schema.",
				"Fields used in conditions are required to be available in output schema.").
				WithConfigElement("aggregates", path)
		}
	}
}
