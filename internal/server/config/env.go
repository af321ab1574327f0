package config

// parseEnv overlays values from the environment. lookup is os.LookupEnv in
// production.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	vars := map[string]*string{
		"MASTER_KEY":   &config.MasterKey,
		"JWT_SECRET":   &config.JWTSecret,
		"DATABASE_DSN": &config.DatabaseDSN,
		"HTTP_ADDRESS": &config.EndpointAddrHTTP,
		"GRPC_ADDRESS": &config.EndpointAddrGRPC,
		"LOG_LEVEL":    &config.LogLevel,
		"S3_BUCKET":    &config.S3Bucket,
	}
	for name, dst := range vars {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
}
