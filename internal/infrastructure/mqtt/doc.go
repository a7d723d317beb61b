// Package mqtt connects the generator to an MQTT broker.
//
// When enabled, each generated dashboard is published retained on
// <prefix>/dashboard with one retained message per view, a run summary goes
// to <prefix>/generation, and a message on <prefix>/command/generate asks
// for a new generation. The client announces "online" on <prefix>/status
// and leaves "offline" as its last will.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().GenerateCommand(),
//	    func(topic string, payload []byte) error {
//	        return trigger(payload)
//	    })
package mqtt
