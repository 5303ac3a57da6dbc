// Package universe loads the external reference sets the validation
// pass reconciles against: the expected symbol universe and the
// tickers already known to have failed acquisition.
package universe
