// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// colte-imsi-translate replaces subscriber IMSIs in text logs with the
// pseudonyms colte-log-export uses in its archives, so core network logs
// can be shared and joined against the archives without exposing
// subscribers.
//
// Input is read from the named files, or stdin when none are given.
// Every whitespace-separated word of 15 digits that starts with --prefix
// is replaced, and each output line has its words separated by single
// spaces. Without --prefix every 15-digit word is treated as an IMSI,
// including unrelated numbers of that length, so set it to the home
// network's MCC+MNC (for example 90154) whenever it is known. The key and digest must match the ones used for the export.
package main
