/*
 * skuld log-wrappers
 *
 * Copyright (c) 2023 Telenor Norge AS
 * Author(s):
 *  - Kristian Lyngstøl <kly@kly.no>
 *
 * This library is free software; you can redistribute it and/or
 * modify it under the terms of the GNU Lesser General Public
 * License as published by the Free Software Foundation; either
 * version 2.1 of the License, or (at your option) any later version.
 *
 * This library is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public
 * License along with this library; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
 * 02110-1301  USA
 */

package skuld

/*
log.go is largely a wrapper around logrus, mainly so the rest of the code
can do regular log calls without having to worry about future-proofing it.
Skogul logs through logrus as well, so this keeps the whole process on a
single logger.

Add wrappers on demand.

The one concession it has is that Debug/Debugf evaluate whether we've
turned on debugging before formatting anything. This makes calls to
skuld.Debugf() very fast when debugging is disabled, so it's unproblematic
to add debug-logging in high-traffic code.
*/

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

func Init() {
	logrus.SetOutput(os.Stdout)
	if Config.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
}

func Log(v ...any) {
	logrus.Info(v...)
}

func Logf(format string, v ...any) {
	logrus.Infof(format, v...)
}

func Logln(v ...any) {
	logrus.Infoln(v...)
}

func Fatal(v ...any) {
	logrus.Error(v...)
	os.Exit(1)
}

func Fatalf(format string, v ...any) {
	logrus.Errorf(format, v...)
	os.Exit(1)
}

func Fatalln(v ...any) {
	logrus.Errorln(v...)
	os.Exit(1)
}

func Debug(v ...any) {
	if Config.Debug {
		logrus.Debug(fmt.Sprint(v...))
	}
}

func Debugf(format string, v ...any) {
	if Config.Debug {
		logrus.Debug(fmt.Sprintf(format, v...))
	}
}

func Debugln(v ...any) {
	if Config.Debug {
		logrus.Debug(fmt.Sprintln(v...))
	}
}
