// Copyright 2013 - 2015 Sebastian Ruml <sebastian.ruml@gmail.com>
// Copyright 2021 - 2022 Mendel Greenberg <mendel@chabad360.me>

//Package osc provides a client and server for sending and receiving OpenSoundControl messages.
//
//This implementation is based on the Open Sound Control 1.0 Specification (http://opensoundcontrol.org/spec-1_0.html).
//
//Features
//
//- Supports OSC messages with the following TypeTags:
//
//	'i' (int32)
//	'f' (float32)
//	's' (string)
//	'b' ([]byte)
//	'm' (MIDI, four raw bytes)
//	't' (Timetag)
//	'h' (int64)
//	'd' (float64)
//	'T' (true)
//	'F' (false)
//	'N' (nil)
//
//- Supports OSC bundles, including Timetags
//
//- OSC address pattern matching and dispatching by address and type tag signature.
//
//Usage
//
//OSC client example:
//  client, err := osc.Dial("192.168.255.255:12346")
//  if err != nil { ... }
//  msg := osc.NewMessage("/midi", osc.MIDI{0x00, 0x64, 0x3c, 0x90})
//  client.Send(msg)
//
//OSC server example:
//  d := osc.NewDispatcher()
//  d.AddMethodFunc("/midi", "m", func(msg *osc.Message) {
//      fmt.Println(msg)
//  })
//
//  server := &osc.Server{
//      Addr:       ":12345",
//      Dispatcher: d,
//  }
//  server.ListenAndServe()
package osc
