package status

// Topic layout under the configured prefix (default "lumen"):
//
//	lumen/system/status          retained online/offline/LWT
//	lumen/status                 periodic health summary
//	lumen/control/active-module  inbound active-module selection
func systemStatusTopic(prefix string) string {
	return prefix + "/system/status"
}

func healthTopic(prefix string) string {
	return prefix + "/status"
}

func activeModuleTopic(prefix string) string {
	return prefix + "/control/active-module"
}
