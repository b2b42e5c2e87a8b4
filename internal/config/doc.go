// Package config loads the analyzer configuration.
//
// Values are layered, later sources winning:
//
//	1. Default()
//	2. a YAML file (config.yaml or configs/config.yaml, or an explicit path)
//	3. ECOM_* environment variables
//
// For example:
//
//	ECOM_SERVER_PORT=9000
//	ECOM_ANALYSIS_STATUS_FILTER=shipped
//	ECOM_ANALYSIS_REVIEW_POLICY=keep_first
//	ECOM_PATHS_DATA_DIR=/srv/olist
//
// The resulting configuration is validated with go-playground/validator;
// analysis periods additionally must have months within 1..12.
package config
