// Copyright 2026 Blink Labs Software
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

package models

import "errors"

var ErrModelNotFound = errors.New("model not found")

// Model is a named record with a content pointer. Name and Location are only
// rewritten by an approved proposal.
type Model struct {
	ID       uint   `gorm:"primarykey"`
	ModelID  uint64 `gorm:"uniqueIndex;not null"`
	Name     string `gorm:"not null"`
	Location string `gorm:"not null"`
	Author   string `gorm:"index;size:256;not null"`
	Complete bool   `gorm:"not null;default:false"`
}

// TableName returns the table name
func (Model) TableName() string {
	return "model"
}

// ModelCounter is a singleton row holding the next model ID to allocate
type ModelCounter struct {
	ID     uint `gorm:"primarykey"`
	NextID uint64
}

// TableName returns the table name
func (ModelCounter) TableName() string {
	return "model_counter"
}
