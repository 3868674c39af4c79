// Package monitor turns a GC9A01 panel into a small home dashboard driven
// by a line based serial protocol.
//
// Each line is NAME:payload. Supported commands:
//
//	MSG:text            show a message
//	DISP:text           same as MSG
//	BRIGHT:n            backlight percent, 0-100
//	MODE:name           Clock, Bedroom, Weather, Cycle, Battery or Message
//	CMD:CLEAR           blank the screen
//	CMD:TIME            show the clock
//	COLOR:r,g,b         text colour
//	SETTIME:Y,M,D,h,m,s,wd,yd
//	WEATHER:condition,temp,humidity
//	BEDROOM:temp,humidity
//	HIVE:current,target,heating,hotwater
//	SOC:n               battery state of charge, 0-100
//
// A Server reads commands, redraws what changed and writes a
// SENSOR:{json} status line every ten seconds. In Cycle mode the clock,
// weather and bedroom screens rotate every ten seconds.
package monitor
