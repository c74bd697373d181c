//go:build linux

package ioctx_test

import (
	"context"
	"fmt"
	"time"

	"github.com/joeycumines/go-ioctx"
)

func ExampleIoCtx_Post() {
	x, err := ioctx.New[ioctx.SingleThreadTrait](ioctx.WithWaitCeiling(10 * time.Millisecond))
	if err != nil {
		panic(err)
	}
	defer x.Close()

	for _, name := range []string{"A", "B", "C"} {
		x.Post(func() { fmt.Println("task", name) })
	}
	x.Post(x.RequestAbort)

	if err := x.Run(context.Background()); err != nil {
		panic(err)
	}

	//output:
	//task A
	//task B
	//task C
}

func ExampleIoCtx_PostTimeOut() {
	x, err := ioctx.New[ioctx.SingleThreadTrait](
		ioctx.WithTimeOut(20*time.Millisecond),
		ioctx.WithWaitCeiling(5*time.Millisecond),
	)
	if err != nil {
		panic(err)
	}
	defer x.Close()

	var node ioctx.TimeNode
	node.SetTask(ioctx.NewPostTask(func(*ioctx.PostTask) {
		fmt.Println("timed out")
		x.RequestAbort()
	}))
	x.PostTimeOut(&node)
	x.Post(func() { fmt.Println("armed") })

	if err := x.Run(context.Background()); err != nil {
		panic(err)
	}

	//output:
	//armed
	//timed out
}

func ExampleIOEvents_String() {
	fmt.Println(ioctx.EventRead | ioctx.EventHangup)
	fmt.Println(ioctx.IOEvents(0))

	//output:
	//read|hangup
	//none
}
