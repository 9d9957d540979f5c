// Package stack assembles the device layer: it creates the interrupt
// controller and the device registry, builds the configured devices and
// drives the lifecycle.
//
// Typical use:
//
//	cfg, err := stack.LoadConfig("netstack.yaml")
//	if err != nil {
//		return err
//	}
//	s, err := stack.New(cfg, stack.Options{Logger: logger})
//	if err != nil {
//		return err
//	}
//	if err := s.Run(); err != nil {
//		return err
//	}
//	defer s.Shutdown()
package stack
