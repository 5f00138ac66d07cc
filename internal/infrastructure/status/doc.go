// Package status provides MQTT presence and health reporting for Lumen Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Last Will and Testament (LWT) for offline detection
//   - A retained periodic health summary (routing epoch, device health)
//   - Inbound active-module selection over the control topic
//
// # Architecture
//
// Lumen publishes its state onto the venue's MQTT bus so companion
// services (dashboards, the module host) can observe routing and device
// health without polling the debug API.
//
//	Lumen Core -> MQTT Broker -> observers
//	module host -> lumen/control/active-module -> Lumen Core
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := status.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	pub := status.NewPublisher(status.PublisherDeps{
//	    Client:    client,
//	    Source:    comp,
//	    Selector:  comp,
//	    ServiceID: cfg.Service.ID,
//	    Prefix:    cfg.MQTT.TopicPrefix,
//	    Interval:  cfg.GetStatusInterval(),
//	})
//	pub.Start()
//	defer pub.Close()
package status
