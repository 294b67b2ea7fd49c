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

// Role names stored in the role grant table
const (
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// RoleGrant gives a principal a role
type RoleGrant struct {
	ID        uint   `gorm:"primarykey"`
	Principal string `gorm:"uniqueIndex:idx_role_grant,priority:1;size:256;not null"`
	Role      string `gorm:"uniqueIndex:idx_role_grant,priority:2;size:32;not null"`
}

// TableName returns the table name
func (RoleGrant) TableName() string {
	return "role_grant"
}
