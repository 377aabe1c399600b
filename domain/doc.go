// Package domain defines the core data structures of divreminder and the
// repository interfaces that persist them.
//
// It contains the models for tracked products, user-defined sectors, dividend
// payments, provider API keys, import runs and the activity log. Keeping the
// repository contracts here lets the root package and the CLI depend on
// behaviour rather than on the SQL implementation in the db package.
package domain
